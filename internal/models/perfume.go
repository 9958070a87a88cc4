package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
)

// Perfume is a catalog item
type Perfume struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Brand       string     `json:"brand" db:"brand"`
	Name        string     `json:"name" db:"name"`
	CapacityML  int        `json:"capacity_ml" db:"capacity_ml"`
	Description NullString `json:"description,omitempty" db:"description"`
	ImageURL    NullString `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Label is the short "Brand - Name" form used in messages
func (p Perfume) Label() string {
	return fmt.Sprintf("%s - %s", p.Brand, p.Name)
}

func (p Perfume) String() string {
	return fmt.Sprintf("%s - %s (%dml)", p.Brand, p.Name, p.CapacityML)
}

// PerfumeOrder selects the ordering of a perfume listing
type PerfumeOrder int

const (
	// PerfumeOrderByBrandName orders by brand, then name
	PerfumeOrderByBrandName PerfumeOrder = iota
	// PerfumeOrderByNewest orders by created_at, newest first
	PerfumeOrderByNewest
)

// PerfumeInput holds the replaceable fields of a perfume
type PerfumeInput struct {
	Brand       string
	Name        string
	CapacityML  int
	Description string
	ImageURL    string
}

// Validate checks the catalog rules: brand and name present, capacity positive
func (in PerfumeInput) Validate() error {
	if strings.TrimSpace(in.Brand) == "" {
		return apperrors.Validation("brand", "Brand is required.")
	}
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation("name", "Name is required.")
	}
	if in.CapacityML <= 0 {
		return apperrors.Validation("capacity_ml", "Capacity must be a positive number of millilitres.")
	}
	if len(in.ImageURL) > 500 {
		return apperrors.Validation("image_url", "Image URL must be at most 500 characters.")
	}
	return nil
}

// PerfumeForm is the add/edit form payload
type PerfumeForm struct {
	Brand       string `form:"brand" validate:"required,max=100"`
	Name        string `form:"name" validate:"required,max=200"`
	CapacityML  string `form:"capacity_ml" validate:"required"`
	Description string `form:"description"`
	ImageURL    string `form:"image_url" validate:"omitempty,url,max=500"`
}

// ToInput converts the raw form into a PerfumeInput. capacity_ml must be a
// positive integer.
func (f PerfumeForm) ToInput() (PerfumeInput, error) {
	capacity, err := strconv.Atoi(strings.TrimSpace(f.CapacityML))
	if err != nil {
		return PerfumeInput{}, apperrors.Validation("capacity_ml", "Capacity must be a whole number of millilitres.")
	}

	input := PerfumeInput{
		Brand:       strings.TrimSpace(f.Brand),
		Name:        strings.TrimSpace(f.Name),
		CapacityML:  capacity,
		Description: strings.TrimSpace(f.Description),
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}
	if err := input.Validate(); err != nil {
		return PerfumeInput{}, err
	}
	return input, nil
}
