package dagcbor

import (
	"github.com/distribution/dagcodec/multicodec"
)

func init() {
	multicodec.RegisterEncoder(multicodec.CodeDagCBOR, EncodeValueTo)
	multicodec.RegisterDecoder(multicodec.CodeDagCBOR, DecodeValue)
}
