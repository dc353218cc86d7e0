package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/docquery/core"
)

// Key prefixes for different data types
const (
	documentPrefix         = "docrec"
	documentDatePrefix     = "docrecd"
	documentFingerPrefix   = "docfpr"
	documentIDSeq          = "docrecseq"
	chunkPrefix            = "chkrec"
	chunkDocumentPrefix    = "chkdoc"
	chunkIDSeq             = "chkrecseq"
	conversationPrefix     = "convrec"
	conversationDatePrefix = "convrecd"
	conversationIDSeq      = "convrecseq"
	messagePrefix          = "msgrec"
	messageConvPrefix      = "msgconv"
	messageIDSeq           = "msgrecseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the upload-date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	return makeComposite(documentDatePrefix, uint64(timestamp.UnixMicro()), uint64(id))
}

// makeDocumentFingerprintKey generates a key for the content fingerprint index.
func makeDocumentFingerprintKey(fingerprint core.ID) []byte {
	return makePartial(documentFingerPrefix, uint64(fingerprint))
}

// makeChunkKey generates a key for a chunk by ID. The ID is written in
// BigEndian so lexicographic iteration over the prefix visits chunks in
// insertion order.
func makeChunkKey(id core.ID) []byte {
	return makePartial(chunkPrefix, uint64(id))
}

// makeChunkDocumentKey generates a composite key for the per-document chunk
// index. Format: prefix:documentID:position
func makeChunkDocumentKey(documentID core.ID, position int) []byte {
	return makeComposite(chunkDocumentPrefix, uint64(documentID), uint64(position))
}

// makePartialChunkDocumentKey generates a partial key for per-document
// chunk queries. Format: prefix:documentID
func makePartialChunkDocumentKey(documentID core.ID) []byte {
	return makePartial(chunkDocumentPrefix, uint64(documentID))
}

// makeConversationKey generates a key for a conversation by ID.
func makeConversationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conversationPrefix, id))
}

// makeConversationDateKey generates a composite key for the creation-date index.
// Format: prefix:timestamp:id
func makeConversationDateKey(timestamp time.Time, id core.ID) []byte {
	return makeComposite(conversationDatePrefix, uint64(timestamp.UnixMicro()), uint64(id))
}

// makeMessageKey generates a key for a message by ID.
func makeMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", messagePrefix, id))
}

// makeMessageConvKey generates a composite key for the per-conversation
// message index. Message IDs are sequence-assigned in arrival order, so
// iterating this index yields messages oldest first.
// Format: prefix:conversationID:messageID
func makeMessageConvKey(conversationID, messageID core.ID) []byte {
	return makeComposite(messageConvPrefix, uint64(conversationID), uint64(messageID))
}

// makePartialMessageConvKey generates a partial key for per-conversation
// message queries. Format: prefix:conversationID
func makePartialMessageConvKey(conversationID core.ID) []byte {
	return makePartial(messageConvPrefix, uint64(conversationID))
}

// makeComposite builds prefix:a:b with both components in BigEndian order
// so lexicographic sort matches numeric sort.
func makeComposite(prefix string, a, b uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], a)
	binary.BigEndian.PutUint64(buf[offset+8:], b)
	return buf
}

// makePartial builds prefix:a with the component in BigEndian order.
func makePartial(prefix string, a uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], a)
	return buf
}
