package apiv1

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The served OpenAPI document has to stay loadable and internally
// consistent; a broken document takes the swagger UI down with it.
func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)

	require.NoError(t, doc.Validate(loader.Context))

	assert.Equal(t, "BlackBrain API", doc.Info.Title)
}

func TestOpenAPIDocumentCoversRoutes(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)

	for _, path := range []string{
		"/ping",
		"/plans",
		"/user/profile",
		"/brain/ask",
		"/history",
		"/subscription/create-order",
		"/subscription/verify",
		"/subscription/status",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "path %s missing from OpenAPI document", path)
	}
}
