package models

import "time"

type Package struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Price     int64      `json:"price"`
	Range     *string    `json:"range"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// PackageList mirrors Paged with the caller's own assignment attached.
type PackageList struct {
	Data       []Package    `json:"data"`
	MyPackage  *UserPackage `json:"my_package"`
	Pagination *PageMeta    `json:"pagination,omitempty"`
}
