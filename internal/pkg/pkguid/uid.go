package pkguid

// StringID generates request scoped identifiers such as correlation ids.
type StringID interface {
	Generate() string
}

// NumberID generates identifiers for stored records.
type NumberID interface {
	Generate() int64
}

var (
	_ StringID = (*UUID)(nil)
	_ NumberID = (*Snowflake)(nil)
)
