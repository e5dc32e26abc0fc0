package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	for input, expected := range map[string]string{
		"Who was Django Reinhardt?": "who-was-django-reinhardt",
		"Crème Brûlée, Again!":      "creme-brulee-again",
		"  many   spaces  here ":    "many-spaces-here",
		"already-a-slug":            "already-a-slug",
		"--dashes -- everywhere--":  "dashes-everywhere",
		"Go 1.24 released":          "go-124-released",
		"":                          "",
		"!!!":                       "",
	} {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, Slugify(input))
		})
	}
}
