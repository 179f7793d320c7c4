package protocol

// API keys this broker understands, per spec.md §3's RequestHeader invariant.
const (
	ApiKeyProduce                 int16 = 0
	ApiKeyFetch                   int16 = 1
	ApiKeyApiVersions             int16 = 18
	ApiKeyDescribeTopicPartitions int16 = 75
)

// MaxReservedApiKey is the top of the range Kafka reserves for API keys,
// whether or not this broker implements a handler for a given value in it.
// Keys in 0..=MaxReservedApiKey with no handler are "unimplemented"; keys
// above it are "invalid".
const MaxReservedApiKey int16 = 75

// Wire error codes (spec.md §6).
const (
	ErrorNone               int16 = 0
	ErrorUnknownTopicOrPart int16 = 3
	ErrorUnsupportedVersion int16 = 35
	ErrorUnknownTopicID     int16 = 100
)

// ApiVersions supported-version window (spec.md §4.F.1).
const (
	MinSupportedApiVersion int16 = 0
	MaxSupportedApiVersion int16 = 4
)

// Per-API advertised version windows (spec.md §4.F.1).
const (
	ApiVersionsMinVersion             int16 = 0
	ApiVersionsMaxVersion             int16 = 4
	DescribeTopicPartitionsMinVersion int16 = 0
	DescribeTopicPartitionsMaxVersion int16 = 0
	FetchMinVersion                   int16 = 0
	FetchMaxVersion                   int16 = 16
	ProduceMinVersion                 int16 = 0
	ProduceMaxVersion                 int16 = 11
)

// TopicAuthorizedOperations is the read+describe authorized-operations
// bitmask advertised in DescribeTopicPartitions responses. spec.md §9
// resolves the corpus's 0x1234/0x0DF8 inconsistency in favor of this value.
const TopicAuthorizedOperations int32 = 0x00000DF8

// IsKnownApiKey reports whether key has a handler in this broker.
func IsKnownApiKey(key int16) bool {
	switch key {
	case ApiKeyProduce, ApiKeyFetch, ApiKeyApiVersions, ApiKeyDescribeTopicPartitions:
		return true
	default:
		return false
	}
}

// IsFlexibleVersion reports whether the given api_key/api_version pair uses
// compact encodings and a trailing response TAG_BUFFER, per spec.md §4.F.
func IsFlexibleVersion(apiKey, apiVersion int16) bool {
	switch apiKey {
	case ApiKeyApiVersions:
		return apiVersion >= 3
	case ApiKeyDescribeTopicPartitions:
		return true
	case ApiKeyFetch:
		return apiVersion >= 12
	case ApiKeyProduce:
		return apiVersion >= 9
	default:
		return false
	}
}
