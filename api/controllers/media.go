package controllers

import (
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
)

// maxMultipartMemory bounds how much of an upload is buffered in memory.
const maxMultipartMemory = 8 << 20

// formImage pulls the "file" part out of a multipart upload.
func formImage(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part is required")
	}
	return file, header, nil
}
