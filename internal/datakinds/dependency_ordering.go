package datakinds

import (
	"sort"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

// OrderCollectionsForInit sorts collections so that Segments precede Features, and within
// Features, each flag comes after the prerequisite flags it depends on. Persistent stores that
// replay Init writes one item at a time (rather than atomically) depend on this ordering so a
// reader never observes a flag before its prerequisites exist.
func OrderCollectionsForInit(collections []ffstoretypes.Collection) []ffstoretypes.Collection {
	ordered := make([]ffstoretypes.Collection, len(collections))
	copy(ordered, collections)

	for i := range ordered {
		if ordered[i].Kind == Features {
			ordered[i].Items = orderFeaturesByDependency(ordered[i].Items)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return initPriority(ordered[i].Kind) < initPriority(ordered[j].Kind)
	})
	return ordered
}

func initPriority(kind ffstoretypes.DataKind) int {
	switch kind {
	case Segments:
		return 0
	case Features:
		return 1
	default:
		return 2
	}
}

func orderFeaturesByDependency(items []ffstoretypes.KeyedItemDescriptor) []ffstoretypes.KeyedItemDescriptor {
	remaining := make(map[string]ffstoretypes.KeyedItemDescriptor, len(items))
	for _, item := range items {
		remaining[item.Key] = item
	}

	ordered := make([]ffstoretypes.KeyedItemDescriptor, 0, len(items))
	// Iterate the original slice for deterministic output instead of ranging over the map.
	for _, item := range items {
		if _, stillRemaining := remaining[item.Key]; stillRemaining {
			addWithDependenciesFirst(item, remaining, &ordered)
		}
	}
	return ordered
}

func addWithDependenciesFirst(
	item ffstoretypes.KeyedItemDescriptor,
	remaining map[string]ffstoretypes.KeyedItemDescriptor,
	out *[]ffstoretypes.KeyedItemDescriptor,
) {
	delete(remaining, item.Key)
	for _, prereqKey := range prerequisiteKeys(item.Item) {
		if prereqItem, ok := remaining[prereqKey]; ok {
			addWithDependenciesFirst(prereqItem, remaining, out)
		}
	}
	*out = append(*out, item)
}

func prerequisiteKeys(item ffstoretypes.ItemDescriptor) []string {
	flag, ok := item.Item.(*ffmodel.FeatureFlag)
	if !ok {
		return nil
	}
	keys := make([]string, len(flag.Prerequisites))
	for i, p := range flag.Prerequisites {
		keys[i] = p.Key
	}
	return keys
}
