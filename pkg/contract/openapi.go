package contract

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/oksasatya/go-users-contract/pkg/dto"
)

// OpenAPI renders the router as a Swagger 2.0 document. Responses are
// described inside the response envelope the server writes.
func OpenAPI(router Router, title, version, basePath string) *spec.Swagger {
	sw := &spec.Swagger{SwaggerProps: spec.SwaggerProps{
		Swagger:     "2.0",
		Info:        &spec.Info{InfoProps: spec.InfoProps{Title: title, Version: version}},
		BasePath:    basePath,
		Consumes:    []string{"application/json"},
		Produces:    []string{"application/json"},
		Paths:       &spec.Paths{Paths: map[string]spec.PathItem{}},
		Definitions: spec.Definitions{},
	}}
	sw.Definitions["ErrorResponse"] = *envelope(nil).
		SetProperty("error", *new(spec.Schema).Typed("object", ""))

	Walk(router, func(path []string, r Route) {
		op := spec.NewOperation(strings.Join(path, ".")).
			WithSummary(r.Summary).
			WithTags(path[0])

		if r.Params != nil {
			for _, name := range PathParams(r.Path) {
				p := spec.PathParam(name)
				if f, ok := r.Params.Field(name); ok {
					p.Typed(f.Type, f.Format)
				} else {
					p.Typed("string", "")
				}
				op.AddParam(p)
			}
		}
		if r.Query != nil {
			for _, f := range r.Query.Fields {
				p := spec.QueryParam(f.Name).Typed(f.Type, f.Format)
				p.Required = f.Required
				op.AddParam(p)
			}
		}
		if r.Body != nil {
			define(sw, r.Body)
			op.AddParam(spec.BodyParam("body", spec.RefSchema(ref(r.Body))).AsRequired())
		}

		var data *spec.Schema
		if r.Output != nil {
			define(sw, r.Output)
			data = spec.RefSchema(ref(r.Output))
			if r.ListOutput {
				data = spec.ArrayProperty(data)
			}
		}
		status := r.Status
		if status == 0 {
			status = http.StatusOK
		}
		body := envelope(data)
		if r.ListOutput {
			body.SetProperty("meta", *new(spec.Schema).Typed("object", "").
				SetProperty("count", *spec.Int64Property()))
		}
		op.RespondsWith(status, spec.NewResponse().
			WithDescription(http.StatusText(status)).
			WithSchema(body))

		errResp := func(code int) *spec.Response {
			return spec.NewResponse().
				WithDescription(http.StatusText(code)).
				WithSchema(spec.RefSchema("#/definitions/ErrorResponse"))
		}
		if r.Params != nil || r.Query != nil || r.Body != nil {
			op.RespondsWith(http.StatusBadRequest, errResp(http.StatusBadRequest))
		}
		if r.Params != nil {
			op.RespondsWith(http.StatusNotFound, errResp(http.StatusNotFound))
		}

		swPath := toSwaggerPath(r.Path)
		item := sw.Paths.Paths[swPath]
		switch strings.ToUpper(r.Method) {
		case http.MethodGet:
			item.Get = op
		case http.MethodHead:
			item.Head = op
		case http.MethodPost:
			item.Post = op
		case http.MethodPut:
			item.Put = op
		case http.MethodPatch:
			item.Patch = op
		case http.MethodDelete:
			item.Delete = op
		}
		sw.Paths.Paths[swPath] = item
	})
	return sw
}

func ref(s *dto.Schema) string {
	return "#/definitions/" + s.Name
}

func define(sw *spec.Swagger, s *dto.Schema) {
	if _, ok := sw.Definitions[s.Name]; ok {
		return
	}
	def := new(spec.Schema).Typed("object", "")
	for _, f := range s.Fields {
		prop := new(spec.Schema).Typed(f.Type, f.Format)
		if f.Example != "" {
			prop.WithExample(example(f))
		}
		def.SetProperty(f.Name, *prop)
	}
	if req := s.RequiredNames(); len(req) > 0 {
		def.WithRequired(req...)
	}
	sw.Definitions[s.Name] = *def
}

func envelope(data *spec.Schema) *spec.Schema {
	env := new(spec.Schema).Typed("object", "").
		SetProperty("status", *spec.Int64Property()).
		SetProperty("timestamp", *spec.DateTimeProperty()).
		SetProperty("request_id", *spec.StringProperty()).
		SetProperty("success", *spec.BoolProperty()).
		SetProperty("message", *spec.StringProperty())
	if data != nil {
		env.SetProperty("data", *data)
	}
	return env
}

func example(f dto.Field) any {
	switch f.Type {
	case "integer":
		if n, err := strconv.ParseInt(f.Example, 10, 64); err == nil {
			return n
		}
	case "number":
		if n, err := strconv.ParseFloat(f.Example, 64); err == nil {
			return n
		}
	case "boolean":
		if b, err := strconv.ParseBool(f.Example); err == nil {
			return b
		}
	}
	return f.Example
}

// toSwaggerPath turns "/users/:id" into "/users/{id}".
func toSwaggerPath(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			segs[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}
