package bind_group_provider

// BufferWrite describes a single GPU buffer write targeting a binding of a
// BindGroupProvider at a byte offset. The uniform ring writes one per frame at the
// offset of the slot it acquired.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
