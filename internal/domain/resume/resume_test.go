package resume

import (
	"testing"

	"hireflow/internal/common"
)

func TestFileValidate(t *testing.T) {
	valid := []string{"cv.pdf", "CV.DOCX", "old.doc"}
	for _, name := range valid {
		if err := (File{Name: name, Data: []byte("x")}).Validate(); err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
	invalid := []File{
		{Name: "", Data: []byte("x")},
		{Name: "photo.png", Data: []byte("x")},
		{Name: "noext", Data: []byte("x")},
		{Name: "cv.pdf"},
	}
	for _, file := range invalid {
		if err := file.Validate(); !common.Is(err, common.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", file.Name, err)
		}
	}
}
