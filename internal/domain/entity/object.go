package entity

import "io"

// Object is a blob ready to be written to storage.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}
