package ffredis

import (
	"strconv"
	"strings"

	"github.com/fluxflag/go-server-sdk/ffstoretypes"
)

// Redis hash fields hold one string per item, so a SerializedItemDescriptor's Version/Deleted/
// SerializedItem are packed as "<version>:<deleted>:<payload>". The payload is JSON text and may
// itself contain colons, but version and deleted never do, so splitting into at most three parts
// from the left leaves the payload intact.
const fieldSep = ":"

func encodeItem(item ffstoretypes.SerializedItemDescriptor) string {
	deleted := "0"
	if item.Deleted {
		deleted = "1"
	}
	return strconv.Itoa(item.Version) + fieldSep + deleted + fieldSep + string(item.SerializedItem)
}

func decodeItem(raw string) ffstoretypes.SerializedItemDescriptor {
	parts := strings.SplitN(raw, fieldSep, 3)
	if len(parts) != 3 {
		return ffstoretypes.NotFoundSerialized()
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return ffstoretypes.NotFoundSerialized()
	}
	return ffstoretypes.SerializedItemDescriptor{
		Version:        version,
		Deleted:        parts[1] == "1",
		SerializedItem: []byte(parts[2]),
	}
}
