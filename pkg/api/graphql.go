package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/pkg/screensaver"
	"github.com/graphql-go/graphql"
)

var (
	errRateLimited   = errors.New("too many uploads, try again shortly")
	errNoScreensaver = errors.New("Screensaver service not available")
)

// GraphQLRequest is the body of POST /graphql.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				http.Error(w, "Invalid variables", http.StatusBadRequest)
				return
			}
		}
	case http.MethodPost:
		if err := json.NewDecoder(io.LimitReader(r.Body, MaxImageBytes)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if req.Query == "" {
		http.Error(w, "Missing query", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) buildSchema() (graphql.Schema, error) {
	uploadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Upload",
		Fields: graphql.Fields{
			"uuid": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: uploadField(func(u gallery.Upload) interface{} { return u.UUID }),
			},
			"name": &graphql.Field{
				Type:    graphql.String,
				Resolve: uploadField(func(u gallery.Upload) interface{} { return optional(u.Name) }),
			},
			"message": &graphql.Field{
				Type:    graphql.String,
				Resolve: uploadField(func(u gallery.Upload) interface{} { return optional(u.Message) }),
			},
			"data": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: uploadField(func(u gallery.Upload) interface{} {
					return base64.StdEncoding.EncodeToString(u.Data)
				}),
			},
			"public": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Resolve: uploadField(func(u gallery.Upload) interface{} { return u.Public }),
			},
			"uploadedAt": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: uploadField(func(u gallery.Upload) interface{} { return formatTime(u.UploadedAt) }),
			},
			"display": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: uploadField(func(u gallery.Upload) interface{} { return u.Display.String() }),
			},
			"png": &graphql.Field{
				Type:    graphql.String,
				Resolve: s.resolveThumbnail,
			},
		},
	})

	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScreensaverStatus",
		Fields: graphql.Fields{
			"isRunning":       &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"currentIndex":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"uploadCount":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"intervalSeconds": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	uploadInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UploadInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"message": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"data":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"public":  &graphql.InputObjectFieldConfig{Type: graphql.Boolean, DefaultValue: false},
			"display": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	uploadPatch := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UploadPatch",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"message": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"public":  &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		},
	})

	uuidArg := graphql.FieldConfigArgument{
		"uploadUuid": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getUpload": &graphql.Field{
				Type: graphql.NewNonNull(uploadType),
				Args: uuidArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.gallery.Get(p.Args["uploadUuid"].(string))
				},
			},
			"listUploads": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(uploadType))),
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: gallery.DefaultListLimit},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					offset, _ := p.Args["offset"].(int)
					return s.gallery.List(limit, offset), nil
				},
			},
			"screensaverStatus": &graphql.Field{
				Type: graphql.NewNonNull(statusType),
				Resolve: s.withScreensaver(func(_ context.Context, ss Screensaver, _ map[string]interface{}) (interface{}, error) {
					return stateMap(ss.State()), nil
				}),
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUpload": &graphql.Field{
				Type: graphql.NewNonNull(uploadType),
				Args: graphql.FieldConfigArgument{
					"upload": &graphql.ArgumentConfig{Type: graphql.NewNonNull(uploadInput)},
				},
				Resolve: s.resolveCreateUpload,
			},
			"updateUpload": &graphql.Field{
				Type: graphql.NewNonNull(uploadType),
				Args: graphql.FieldConfigArgument{
					"uploadUuid": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"patch":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(uploadPatch)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					fields, _ := p.Args["patch"].(map[string]interface{})
					patch := gallery.UploadPatch{
						Name:    stringArg(fields, "name"),
						Message: stringArg(fields, "message"),
					}
					if v, ok := fields["public"].(bool); ok {
						patch.Public = &v
					}
					return s.gallery.Update(p.Args["uploadUuid"].(string), patch)
				},
			},
			"deleteUpload": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: uuidArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := s.gallery.Delete(p.Args["uploadUuid"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"pauseScreensaver":  s.control(func(_ context.Context, ss Screensaver) { ss.Pause() }),
			"resumeScreensaver": s.control(func(_ context.Context, ss Screensaver) { ss.Resume() }),
			"nextImage":         s.control(func(ctx context.Context, ss Screensaver) { ss.Next(ctx) }),
			"previousImage":     s.control(func(ctx context.Context, ss Screensaver) { ss.Previous(ctx) }),
			"setScreensaverInterval": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"seconds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: s.withScreensaver(func(_ context.Context, ss Screensaver, args map[string]interface{}) (interface{}, error) {
					seconds, _ := args["seconds"].(int)
					if _, err := ss.SetInterval(seconds); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func (s *Server) resolveCreateUpload(p graphql.ResolveParams) (interface{}, error) {
	if !s.createLimiter.Allow() {
		return nil, errRateLimited
	}
	fields, _ := p.Args["upload"].(map[string]interface{})
	in := gallery.UploadInput{
		Name:    stringArg(fields, "name"),
		Message: stringArg(fields, "message"),
	}
	in.Data, _ = fields["data"].(string)
	in.Public, _ = fields["public"].(bool)
	if d := stringArg(fields, "display"); d != nil {
		in.Display = *d
	}
	u, err := s.gallery.Create(p.Context, in)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) resolveThumbnail(p graphql.ResolveParams) (interface{}, error) {
	var id string
	switch u := p.Source.(type) {
	case gallery.Upload:
		id = u.UUID
	case *gallery.Upload:
		id = u.UUID
	default:
		return nil, nil
	}
	data, contentType, err := s.gallery.Thumbnail(id)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

type screensaverFunc func(ctx context.Context, ss Screensaver, args map[string]interface{}) (interface{}, error)

func (s *Server) withScreensaver(f screensaverFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if s.screensaver == nil {
			return nil, errNoScreensaver
		}
		return f(p.Context, s.screensaver, p.Args)
	}
}

// control builds a no-argument mutation that always answers true.
func (s *Server) control(f func(ctx context.Context, ss Screensaver)) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Resolve: s.withScreensaver(func(ctx context.Context, ss Screensaver, _ map[string]interface{}) (interface{}, error) {
			f(ctx, ss)
			return true, nil
		}),
	}
}

func uploadField(get func(gallery.Upload) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch u := p.Source.(type) {
		case gallery.Upload:
			return get(u), nil
		case *gallery.Upload:
			return get(*u), nil
		}
		return nil, fmt.Errorf("unexpected upload source %T", p.Source)
	}
}

func stateMap(st screensaver.State) map[string]interface{} {
	return map[string]interface{}{
		"isRunning":       st.IsRunning,
		"currentIndex":    st.CurrentIndex,
		"uploadCount":     st.UploadCount,
		"intervalSeconds": st.IntervalSeconds,
	}
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func stringArg(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}
