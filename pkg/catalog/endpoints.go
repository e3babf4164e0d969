package catalog

import "strings"

// Endpoint access levels. Reads are public; mutations require the admin
// surface.
const (
	AccessPublic = "public"
	AccessAdmin  = "admin"
)

// Endpoint is one entry of the generated REST reference shown on every list
// page.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Access string `json:"access"`
}

// Endpoints generates the REST reference for one entity kind. baseURL is the
// service origin; storeID scopes the paths for store-owned kinds and is
// ignored for KindStore. Record IDs appear as placeholders like
// {billboardId}.
func Endpoints(def Definition, baseURL, storeID string) []Endpoint {
	base := strings.TrimSuffix(baseURL, "/")

	var collection string
	if def.Kind.Scoped() {
		collection = base + "/api/" + storeID + "/" + def.Plural
	} else {
		collection = base + "/api/" + def.Plural
	}
	item := collection + "/{" + string(def.Kind) + "Id}"

	return []Endpoint{
		{Method: "GET", Path: collection, Access: AccessPublic},
		{Method: "GET", Path: item, Access: AccessPublic},
		{Method: "POST", Path: collection, Access: AccessAdmin},
		{Method: "PATCH", Path: item, Access: AccessAdmin},
		{Method: "DELETE", Path: item, Access: AccessAdmin},
	}
}
