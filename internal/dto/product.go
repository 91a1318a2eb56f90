// Package dto holds the request and response shapes exchanged over HTTP.
package dto

import "storefront/internal/models"

type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

func NewCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

// ProductDTO is the full product representation used for reads and writes.
type ProductDTO struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name" validate:"required,notblank,min=3,max=80"`
	Description string        `json:"description" validate:"required,notblank,min=10"`
	Price       float64       `json:"price" validate:"gt=0"`
	ImgURL      string        `json:"imgUrl"`
	Categories  []CategoryDTO `json:"categories"`
}

func NewProductDTO(p *models.Product) ProductDTO {
	d := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImgURL,
		Categories:  make([]CategoryDTO, 0, len(p.Categories)),
	}
	for _, c := range p.Categories {
		d.Categories = append(d.Categories, NewCategoryDTO(c))
	}
	return d
}

// CopyTo overwrites the scalar fields of p and replaces its category set with
// references built from the DTO's category ids. Duplicate ids collapse.
func (d ProductDTO) CopyTo(p *models.Product) {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price
	p.ImgURL = d.ImgURL

	p.Categories = make([]models.Category, 0, len(d.Categories))
	seen := make(map[int64]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		p.Categories = append(p.Categories, models.Category{ID: c.ID})
	}
}

// ProductMinDTO is the compact representation returned by searches.
type ProductMinDTO struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	ImgURL string  `json:"imgUrl"`
}

func NewProductMinDTO(p models.Product) ProductMinDTO {
	return ProductMinDTO{ID: p.ID, Name: p.Name, Price: p.Price, ImgURL: p.ImgURL}
}
