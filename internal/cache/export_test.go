package cache

func SetIfVersionScript() string { return setIfVersionScript }
