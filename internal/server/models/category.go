package models

// Category is a fixed label tasks are grouped under. Names need not be unique.
type Category struct {
	ID   int64
	Name string
}
