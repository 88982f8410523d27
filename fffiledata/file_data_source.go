// Package fffiledata provides a data source that loads flag/segment data from local YAML or JSON
// fixture files, with optional filesystem-watch reloading. Grounded on the teacher's ldfiledata
// and ldfilewatch packages.
package fffiledata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/ghodss/yaml.v1"

	"github.com/fluxflag/go-server-sdk/ffmodel"
	"github.com/fluxflag/go-server-sdk/fflog"
	"github.com/fluxflag/go-server-sdk/ffstoretypes"
	"github.com/fluxflag/go-server-sdk/ffvalue"
	"github.com/fluxflag/go-server-sdk/internal/datakinds"
)

// fileData is the shape each source file is parsed into: a flag's full definition, a single-value
// flag shortcut, or a segment's full definition. Any subset of the three keys may be present in a
// given file; keys across files must be disjoint.
type fileData struct {
	Flags      map[string]*ffmodel.FeatureFlag `json:"flags"`
	FlagValues map[string]ffvalue.Value        `json:"flagValues"`
	Segments   map[string]*ffmodel.Segment     `json:"segments"`
}

// FileDataSource loads flag/segment data from one or more local files into a Store.
type FileDataSource struct {
	store   ffstoretypes.Store
	paths   []string
	loggers fflog.Loggers
}

// NewFileDataSource constructs a FileDataSource over the given file paths. Paths are read lazily,
// on the first call to Reload.
func NewFileDataSource(store ffstoretypes.Store, loggers fflog.Loggers, paths ...string) *FileDataSource {
	return &FileDataSource{store: store, paths: paths, loggers: loggers}
}

// Reload reads every configured file and replaces the Store's contents with their merged data. If
// any file cannot be read or parsed, or if the same key appears in more than one file, the Store is
// left unchanged and an error is returned.
func (fs *FileDataSource) Reload() error {
	all := make([]fileData, 0, len(fs.paths))
	for _, path := range fs.paths {
		data, err := readFile(path)
		if err != nil {
			return fmt.Errorf("fffiledata: %s: %w", path, err)
		}
		all = append(all, data)
	}
	collections, err := mergeFileData(all...)
	if err != nil {
		return err
	}
	return fs.store.Init(datakinds.OrderCollectionsForInit(collections))
}

func readFile(path string) (fileData, error) {
	var data fileData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("unable to read file: %w", err)
	}
	if looksLikeJSON(raw) {
		err = json.Unmarshal(raw, &data)
	} else {
		err = yaml.Unmarshal(raw, &data)
	}
	if err != nil {
		return data, fmt.Errorf("error parsing file: %w", err)
	}
	return data, nil
}

func looksLikeJSON(raw []byte) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(string(raw), unicode.IsSpace), "{")
}

func mergeFileData(all ...fileData) ([]ffstoretypes.Collection, error) {
	flags := map[string]ffstoretypes.ItemDescriptor{}
	segments := map[string]ffstoretypes.ItemDescriptor{}

	insert := func(m map[string]ffstoretypes.ItemDescriptor, kindName, key string, item ffstoretypes.ItemDescriptor) error {
		if _, exists := m[key]; exists {
			return fmt.Errorf("fffiledata: %s %q is defined in more than one file", kindName, key)
		}
		m[key] = item
		return nil
	}

	for _, d := range all {
		for key, flag := range d.Flags {
			if err := insert(flags, "flag", key, ffstoretypes.ItemDescriptor{Version: flag.Version, Item: flag}); err != nil {
				return nil, err
			}
		}
		for key, value := range d.FlagValues {
			flag := singleValueFlag(key, value)
			if err := insert(flags, "flag", key, ffstoretypes.ItemDescriptor{Version: flag.Version, Item: flag}); err != nil {
				return nil, err
			}
		}
		for key, segment := range d.Segments {
			if err := insert(segments, "segment", key, ffstoretypes.ItemDescriptor{Version: segment.Version, Item: segment}); err != nil {
				return nil, err
			}
		}
	}

	return []ffstoretypes.Collection{
		{Kind: datakinds.Features, Items: toKeyedItems(flags)},
		{Kind: datakinds.Segments, Items: toKeyedItems(segments)},
	}, nil
}

func toKeyedItems(m map[string]ffstoretypes.ItemDescriptor) []ffstoretypes.KeyedItemDescriptor {
	items := make([]ffstoretypes.KeyedItemDescriptor, 0, len(m))
	for key, item := range m {
		items = append(items, ffstoretypes.KeyedItemDescriptor{Key: key, Item: item})
	}
	return items
}

// singleValueFlag builds a trivial always-on flag with a single variation, for the FlagValues
// shorthand (useful in test fixtures where rules/targeting aren't needed).
func singleValueFlag(key string, value ffvalue.Value) *ffmodel.FeatureFlag {
	fallthroughVar := 0
	return &ffmodel.FeatureFlag{
		Key:         key,
		On:          true,
		Version:     1,
		Variations:  []ffvalue.Value{value},
		Fallthrough: ffmodel.VariationOrRollout{Variation: &fallthroughVar},
	}
}
