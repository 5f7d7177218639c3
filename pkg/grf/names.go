package grf

import (
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// decodeName converts an EUC-KR stored name to UTF-8. Names that do not
// decode are kept byte for byte.
func decodeName(raw []byte) string {
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// encodeName converts name to the EUC-KR, backslash separated form the
// archive stores.
func encodeName(name string) ([]byte, error) {
	name = strings.ReplaceAll(name, "/", `\`)
	out, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(name))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}
