package ffeval

import (
	"crypto/sha1" //nolint:gosec // not used for anything security-sensitive, only deterministic bucketing
	"encoding/hex"
	"io"
	"strconv"

	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// longScale is 2^60 - 1, the maximum value of the 60-bit integer produced by the bucketing hash.
//
// This is computed in float64, not float32: a float32 only carries ~7 significant decimal digits,
// too few to represent a 60-bit integer without rounding, which made two distinct users collapse
// into the same bucket far more often than the 1-in-100000 rollout granularity implies.
const longScale = float64(0xFFFFFFFFFFFFFFF)

// bucket computes the deterministic [0, 1) bucket value for a rollout or percentage-rollout
// segment rule. ok is false when the bucketing attribute is absent or not a string/integer, in
// which case the caller must treat the rollout as malformed rather than silently bucketing at 0.
func bucket(user ffuser.User, attr ffuser.UserAttribute, key, salt string) (value float64, ok bool) {
	uValue, found := user.GetAttribute(string(attr))
	if !found {
		return 0, false
	}
	idHash, ok := bucketableStringValue(uValue)
	if !ok {
		return 0, false
	}

	if secondary := user.Secondary(); secondary.IsDefined() {
		idHash = idHash + "." + secondary.StringValue()
	}

	h := sha1.New() //nolint:gosec
	_, _ = io.WriteString(h, key+"."+salt+"."+idHash)
	hash := hex.EncodeToString(h.Sum(nil))[:15]

	intVal, err := strconv.ParseInt(hash, 16, 64)
	if err != nil {
		return 0, false
	}

	return float64(intVal) / longScale, true
}

func bucketableStringValue(v ffvalue.Value) (string, bool) {
	if v.Type() == ffvalue.StringType {
		return v.String(), true
	}
	if v.IsInt() {
		return strconv.Itoa(v.Int()), true
	}
	return "", false
}
