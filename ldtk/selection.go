package ldtk

// LevelSelection picks one level out of a project.
type LevelSelection struct {
	kind       selectionKind
	identifier string
	iid        string
	uid        int
	indices    LevelIndices
}

type selectionKind int

const (
	selectByIdentifier selectionKind = iota
	selectByIid
	selectByUID
	selectByIndices
)

func SelectIdentifier(identifier string) LevelSelection {
	return LevelSelection{kind: selectByIdentifier, identifier: identifier}
}

func SelectIid(iid string) LevelSelection {
	return LevelSelection{kind: selectByIid, iid: iid}
}

func SelectUID(uid int) LevelSelection {
	return LevelSelection{kind: selectByUID, uid: uid}
}

func SelectIndices(indices LevelIndices) LevelSelection {
	return LevelSelection{kind: selectByIndices, indices: indices}
}

// Matches reports whether the level at indices is the selected one.
func (s LevelSelection) Matches(indices LevelIndices, lvl *Level) bool {
	switch s.kind {
	case selectByIdentifier:
		return lvl.Identifier == s.identifier
	case selectByIid:
		return lvl.Iid == s.iid
	case selectByUID:
		return lvl.UID == s.uid
	case selectByIndices:
		return indices == s.indices
	}
	return false
}

// FindRawLevel returns the first level matching sel, in document order.
func FindRawLevel(a RawLevelAccessor, sel LevelSelection) (LevelIndices, *Level, bool) {
	if sel.kind == selectByIndices {
		lvl, ok := RawLevelAt(a, sel.indices)
		return sel.indices, lvl, ok
	}
	for indices, lvl := range RawLevelsWithIndices(a) {
		if sel.Matches(indices, lvl) {
			return indices, lvl, true
		}
	}
	return LevelIndices{}, nil, false
}
