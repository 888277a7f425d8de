package dagjson

import (
	"github.com/distribution/dagcodec/multicodec"
)

func init() {
	multicodec.RegisterEncoder(multicodec.CodeDagJSON, EncodeValueTo)
	multicodec.RegisterDecoder(multicodec.CodeDagJSON, DecodeValue)
}
