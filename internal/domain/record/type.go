package record

// Type is the kind of captured content.
type Type string

// Record type constants.
const (
	Note  Type = "note"
	Image Type = "image"
	Audio Type = "audio"
	Video Type = "video"
	Link  Type = "link"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Note || t == Image || t == Audio || t == Video || t == Link
}

// RequiresFile reports whether records of this type carry an uploaded file.
func (t Type) RequiresFile() bool {
	return t == Image || t == Audio || t == Video
}

// KnownTypes returns all supported record types.
func KnownTypes() []Type {
	return []Type{Note, Image, Audio, Video, Link}
}

// ParseType converts a string into a Type, reporting whether it is known.
func ParseType(s string) (Type, bool) {
	t := Type(s)
	return t, t.IsValid()
}
