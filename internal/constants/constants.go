package constants

import (
	"math"
	"time"
)

const ServiceName = "smskit-service"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second

	DefaultExportTimeout = 2 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
	ConnectTimeout  = 30 * time.Second
)

// Row caps applied by the listing operations.
const (
	FullListingRowCap        = 100
	TransactionListingRowCap = 500
	DefaultLimit             = 100
	UnboundedRowCap          = math.MaxInt32
)

const (
	DefaultPermissionName     = "read_sms"
	DefaultRequestTimeout     = 60 * time.Second
	PermissionKeyPrefix       = "smskit:permission:"
	DefaultPlatformName       = "Android"
	DefaultSMSCollection      = "sms_inbox"
	DefaultMongoDBName        = "smskit"
	DefaultExportTopic        = "transaction_sms"
	EnvelopeSourceTransaction = "smskit.transactions"
)

const (
	SourceTypePostgres = "postgres"
	SourceTypeMongoDB  = "mongodb"
	SourceTypeMemory   = "memory"
)

const (
	PermissionStoreMemory = "memory"
	PermissionStoreRedis  = "redis"
)

const (
	AutoDecisionGrant = "grant"
	AutoDecisionDeny  = "deny"
)
