package assets

import (
	"github.com/google/uuid"
)

// handleNamespace seeds the name-based UUIDs of asset handles.
var handleNamespace = uuid.MustParse("43571891-8570-4416-903f-582efe3426ac")

// UntypedHandle refers to an asset in a Server. Its id is derived from the
// asset path alone, so the same path always yields an equal handle.
type UntypedHandle struct {
	id   uuid.UUID
	path AssetPath
}

func NewUntypedHandle(p AssetPath) UntypedHandle {
	return UntypedHandle{
		id:   uuid.NewSHA1(handleNamespace, []byte(p.String())),
		path: p,
	}
}

func (h UntypedHandle) ID() uuid.UUID {
	return h.id
}

func (h UntypedHandle) Path() AssetPath {
	return h.path
}

func (h UntypedHandle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h UntypedHandle) String() string {
	return h.path.String()
}

// Handle is an UntypedHandle that remembers the type of the asset it refers to.
type Handle[T any] struct {
	UntypedHandle
}

func NewHandle[T any](p AssetPath) Handle[T] {
	return Handle[T]{UntypedHandle: NewUntypedHandle(p)}
}

// Typed converts h into a typed handle. The asset type is checked when the
// handle is used with Get.
func Typed[T any](h UntypedHandle) Handle[T] {
	return Handle[T]{UntypedHandle: h}
}

func (h Handle[T]) Untyped() UntypedHandle {
	return h.UntypedHandle
}
