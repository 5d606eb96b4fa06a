package handler

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	dErrors "trustledger/pkg/domain-errors"
)

// hexBytes carries raw bytes as a 0x-prefixed hex JSON string, matching the
// wire form of addresses and hashes.
type hexBytes []byte

func (b hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(b))
}

func (b *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidArgument, "signature is not valid hex")
	}
	*b = raw
	return nil
}
