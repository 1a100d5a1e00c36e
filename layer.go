package galileo

// Layer is the read surface shared by every kind of map layer.
type Layer interface {
	// Name identifies the layer within its map.
	Name() string

	// Attribution returns the credit line required by the layer's data
	// source, or the empty string when the source declares none.
	Attribution() string
}
