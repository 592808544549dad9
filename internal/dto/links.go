package dto

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/yukikurage/team-task-api/internal/utils"
)

// Link is one hypermedia control. Href is relative to the API root.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Links is the `_links` block attached to every resource representation.
type Links map[string]Link

func get(href string) Link {
	return Link{Href: href, Method: http.MethodGet}
}

func put(href string) Link {
	return Link{Href: href, Method: http.MethodPut}
}

func post(href string) Link {
	return Link{Href: href, Method: http.MethodPost}
}

func del(href string) Link {
	return Link{Href: href, Method: http.MethodDelete}
}

// standardLinks returns self, update, delete and collection controls for one
// entity living under collection.
func standardLinks(collection, id string) Links {
	self := collection + "/" + id
	return Links{
		"self":       get(self),
		"update":     put(self),
		"delete":     del(self),
		"collection": get(collection),
	}
}

// ListResponse is the envelope for every paginated collection.
type ListResponse[T any] struct {
	Items      []T                      `json:"items"`
	Pagination utils.PaginationResponse `json:"pagination"`
	Links      Links                    `json:"_links"`
}

// NewListResponse wraps items with pagination metadata and navigation links
// derived from the request URL, keeping its other query parameters.
func NewListResponse[T any](items []T, reqURL *url.URL, page utils.PaginationParams, total int64) ListResponse[T] {
	if items == nil {
		items = []T{}
	}

	links := Links{"self": get(pageHref(reqURL, page.Page, page.Limit))}
	if page.Page > 1 {
		links["prev"] = get(pageHref(reqURL, page.Page-1, page.Limit))
	}
	if int64(page.Offset+len(items)) < total {
		links["next"] = get(pageHref(reqURL, page.Page+1, page.Limit))
	}

	return ListResponse[T]{
		Items:      items,
		Pagination: page.Response(total),
		Links:      links,
	}
}

func pageHref(reqURL *url.URL, page, limit int) string {
	q := reqURL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return reqURL.Path + "?" + q.Encode()
}

func mapAll[M, D any](in []M, f func(M) D) []D {
	out := make([]D, len(in))
	for i, m := range in {
		out[i] = f(m)
	}
	return out
}

// EntryPoint describes the API root.
type EntryPoint struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Links   Links  `json:"_links"`
}

func NewEntryPoint(name, version string) EntryPoint {
	return EntryPoint{
		Name:    name,
		Version: version,
		Links: Links{
			"self":       get("/"),
			"health":     get("/health"),
			"login":      post("/login"),
			"register":   post("/users"),
			"users":      get("/users"),
			"teams":      get("/teams"),
			"categories": get("/categories"),
			"projects":   get("/projects"),
			"tasks":      get("/tasks"),
		},
	}
}
