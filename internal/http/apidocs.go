package http

import "net/http"

// APIDocs serves the hand-written OpenAPI schema and the two viewer
// pages. The schema file is read once at startup so a broken path
// fails fast instead of on the first request.
type APIDocs struct {
	schema []byte
}

func NewAPIDocs(schema []byte) *APIDocs {
	return &APIDocs{schema: schema}
}

func (d *APIDocs) Schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.oai.openapi; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.schema)
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>MueblesRD Support API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: "/api/schema", dom_id: "#swagger-ui"});
  </script>
</body>
</html>
`

const redocPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>MueblesRD Support API</title>
  <style>body { margin: 0; }</style>
</head>
<body>
  <redoc spec-url="/api/schema"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>
`

func (d *APIDocs) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, swaggerPage)
}

func (d *APIDocs) Redoc(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, redocPage)
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
