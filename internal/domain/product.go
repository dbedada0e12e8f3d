package domain

import "github.com/google/uuid"

type Product struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price Money     `json:"price"`
	Stock int       `json:"stock"`
}
