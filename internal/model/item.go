package model

// ImageRef ties one uploaded image to a content record.  ID is the 1-based
// position of the image within its upload batch and Dir is the stored
// filename relative to the public asset directory.  A record's `images`
// column holds a JSON array of these.
type ImageRef struct {
	ID  int    `json:"id"`
	Dir string `json:"dir"`
}

// ItemFields carries the whitelisted columns shared by every content table.
// Anything else a client sends is ignored; the repository builds its INSERT
// and UPDATE statements from these fields alone.  Images is nil when the
// request attached no files, which on update means "leave the stored images
// column untouched".
type ItemFields struct {
	Name        string
	Category    string
	Description string
	Price       string
	Images      []ImageRef
}

// ResourceType describes one entry of the closed type registry.  The public
// API addresses content by a short type name; each name resolves to exactly
// one backing table.  HasPrice records whether the table carries a price
// column, so the repository can shape its statements per type.
type ResourceType struct {
	Name     string
	Table    string
	HasPrice bool
}

// resourceTypes is the full registry.  Table names only ever come from this
// map, never from request input, which keeps the dynamic :type parameter
// away from SQL text.
var resourceTypes = map[string]ResourceType{
	"attraction":    {Name: "attraction", Table: "attractions", HasPrice: false},
	"accommodation": {Name: "accommodation", Table: "accommodations", HasPrice: true},
	"facility":      {Name: "facility", Table: "facilities", HasPrice: false},
	"paket":         {Name: "paket", Table: "packages", HasPrice: true},
}

// ResolveType maps an external type name to its registry entry.  The second
// return value is false for any name outside the registry.
func ResolveType(name string) (ResourceType, bool) {
	rt, ok := resourceTypes[name]
	return rt, ok
}
