package journey

// --- Grouping projection ---
//
// Journeys can reference another journey as their parent via
// ParentJourneyID. The board view groups children under their parent;
// grouping is a pure projection recomputed from the persisted parent
// field — there is no stored group entity.

// Group is a parent journey with its nested children.
type Group struct {
	Parent   Journey   `json:"parent"`
	Children []Journey `json:"children"`
}

// Board is the grouped projection of a filtered journey list.
type Board struct {
	Groups     []Group   `json:"groups"`
	Standalone []Journey `json:"standalone"`
}

// GroupByParent groups the filtered journeys by parent reference.
//
// The full, unfiltered list decides which journeys act as group heads:
// a journey referenced as someone's parent becomes a head even when the
// filter hid some of its children. Filtered journeys whose parent is not
// itself in the filtered set still nest under that parent when the parent
// survives the filter; otherwise they appear standalone. Order of the
// input is preserved within each bucket.
func GroupByParent(filtered, all []Journey) Board {
	// Which ids are referenced as a parent anywhere?
	isParent := make(map[string]bool)
	for _, j := range all {
		if j.ParentJourneyID != "" {
			isParent[j.ParentJourneyID] = true
		}
	}

	inFiltered := make(map[string]bool, len(filtered))
	for _, j := range filtered {
		inFiltered[j.ID] = true
	}

	var board Board
	groupIdx := make(map[string]int)

	for _, j := range filtered {
		if isParent[j.ID] {
			groupIdx[j.ID] = len(board.Groups)
			board.Groups = append(board.Groups, Group{Parent: j})
		}
	}

	for _, j := range filtered {
		if isParent[j.ID] {
			continue // already a group head
		}
		if j.ParentJourneyID != "" && inFiltered[j.ParentJourneyID] {
			idx := groupIdx[j.ParentJourneyID]
			board.Groups[idx].Children = append(board.Groups[idx].Children, j)
			continue
		}
		board.Standalone = append(board.Standalone, j)
	}

	return board
}
