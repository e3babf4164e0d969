package catalog

import "fmt"

// FieldKind selects the validation and rendering rules for a field.
type FieldKind string

// Field kinds understood by the validator and the console forms.
const (
	FieldText      FieldKind = "text"
	FieldDecimal   FieldKind = "decimal"
	FieldFlag      FieldKind = "flag"
	FieldReference FieldKind = "reference"
	FieldImage     FieldKind = "image"
	FieldImageList FieldKind = "images"
	FieldColor     FieldKind = "color"
)

// Field describes one field of an entity kind.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool

	// Ref names the kind a reference field points at. Referenced records
	// must live in the same store as the referring record.
	Ref Kind
}

// Column describes one list-page projection. Field names a record field,
// or "createdAt" for the formatted creation date. Reference fields project
// the referenced record's title.
type Column struct {
	Title string
	Field string
}

// Definition is the declarative schema of one entity kind.
type Definition struct {
	Kind   Kind
	Title  string // display noun, e.g. "Billboard"
	Plural string // URL segment and document file stem, e.g. "billboards"

	// TitleField names the field that labels a record in pickers, toasts,
	// and reference projections.
	TitleField string

	Fields  []Field
	Columns []Column

	// SearchField names the field the list page filters on.
	SearchField string

	// Guard is the guidance message shown when deletion is blocked because
	// other records still reference this one. Empty means deletion is
	// unrestricted.
	Guard string
}

// definitions is the catalog schema. Order of Kinds() is the canonical
// iteration order.
var definitions = map[Kind]Definition{
	KindStore: {
		Kind:       KindStore,
		Title:      "Store",
		Plural:     "stores",
		TitleField: "name",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: FieldText, Required: true},
		},
		Columns: []Column{
			{Title: "Name", Field: "name"},
			{Title: "Date", Field: "createdAt"},
		},
		SearchField: "name",
		Guard:       "Make sure you removed all products and categories first.",
	},
	KindBillboard: {
		Kind:       KindBillboard,
		Title:      "Billboard",
		Plural:     "billboards",
		TitleField: "label",
		Fields: []Field{
			{Name: "label", Label: "Label", Kind: FieldText, Required: true},
			{Name: "imageUrl", Label: "Background image", Kind: FieldImage, Required: true},
		},
		Columns: []Column{
			{Title: "Label", Field: "label"},
			{Title: "Date", Field: "createdAt"},
		},
		SearchField: "label",
		Guard:       "Make sure you removed all categories using this billboard first.",
	},
	KindCategory: {
		Kind:       KindCategory,
		Title:      "Category",
		Plural:     "categories",
		TitleField: "name",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: FieldText, Required: true},
			{Name: "billboardId", Label: "Billboard", Kind: FieldReference, Required: true, Ref: KindBillboard},
		},
		Columns: []Column{
			{Title: "Name", Field: "name"},
			{Title: "Billboard", Field: "billboardId"},
			{Title: "Date", Field: "createdAt"},
		},
		SearchField: "name",
		Guard:       "Make sure you removed all products using this category first.",
	},
	KindSize: {
		Kind:       KindSize,
		Title:      "Size",
		Plural:     "sizes",
		TitleField: "name",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: FieldText, Required: true},
			{Name: "value", Label: "Value", Kind: FieldText, Required: true},
		},
		Columns: []Column{
			{Title: "Name", Field: "name"},
			{Title: "Value", Field: "value"},
			{Title: "Date", Field: "createdAt"},
		},
		SearchField: "name",
		Guard:       "Make sure you removed all products using this size first.",
	},
	KindColor: {
		Kind:       KindColor,
		Title:      "Color",
		Plural:     "colors",
		TitleField: "name",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: FieldText, Required: true},
			{Name: "value", Label: "Value", Kind: FieldColor, Required: true},
		},
		Columns: []Column{
			{Title: "Name", Field: "name"},
			{Title: "Value", Field: "value"},
			{Title: "Date", Field: "createdAt"},
		},
		SearchField: "name",
		Guard:       "Make sure you removed all products using this color first.",
	},
	KindProduct: {
		Kind:       KindProduct,
		Title:      "Product",
		Plural:     "products",
		TitleField: "name",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: FieldText, Required: true},
			{Name: "price", Label: "Price", Kind: FieldDecimal, Required: true},
			{Name: "categoryId", Label: "Category", Kind: FieldReference, Required: true, Ref: KindCategory},
			{Name: "sizeId", Label: "Size", Kind: FieldReference, Required: true, Ref: KindSize},
			{Name: "colorId", Label: "Color", Kind: FieldReference, Required: true, Ref: KindColor},
			{Name: "images", Label: "Images", Kind: FieldImageList, Required: true},
			{Name: "isFeatured", Label: "Featured", Kind: FieldFlag},
			{Name: "isArchived", Label: "Archived", Kind: FieldFlag},
		},
		Columns: []Column{
			{Title: "Name", Field: "name"},
			{Title: "Archived", Field: "isArchived"},
			{Title: "Featured", Field: "isFeatured"},
			{Title: "Price", Field: "price"},
			{Title: "Category", Field: "categoryId"},
			{Title: "Size", Field: "sizeId"},
			{Title: "Color", Field: "colorId"},
			{Title: "Date", Field: "createdAt"},
		},
		SearchField: "name",
	},
}

// Def returns the definition for a kind.
func Def(kind Kind) (Definition, error) {
	def, ok := definitions[kind]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def, nil
}

// MustDef returns the definition for a kind and panics on unknown kinds.
// Use only with the package Kind constants.
func MustDef(kind Kind) Definition {
	def, err := Def(kind)
	if err != nil {
		panic(err)
	}
	return def
}

// KindForSegment maps a collection URL segment ("billboards") to its kind.
func KindForSegment(segment string) (Kind, error) {
	for _, k := range Kinds() {
		if definitions[k].Plural == segment {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: collection %q", ErrUnknownKind, segment)
}

// Field returns the named field of the definition.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// References returns the definition's reference fields.
func (d Definition) References() []Field {
	var refs []Field
	for _, f := range d.Fields {
		if f.Kind == FieldReference {
			refs = append(refs, f)
		}
	}
	return refs
}

// RecordTitle returns the record's display title per TitleField.
func (d Definition) RecordTitle(rec Record) string {
	return rec.Fields.String(d.TitleField)
}
