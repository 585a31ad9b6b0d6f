package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Table errors
	TableReadError
	TableWriteError
	TableColumnError

	// Rank schema errors
	RankEmptyError
	RankDuplicateError

	// Lineage errors
	LineageRootNullError
	LineageLengthError

	// Consensus errors
	ConsensusEmptyGroupError
	ConsensusNoRanksError
	ConsensusThresholdError
	ConsensusMethodError

	// Uniqueness repair errors
	RepairUnresolvableError

	// Reconciliation errors
	ReconcileWorkerError
	ReconcileAuditError

	// Baseline store errors
	StoreOpenError
	StoreQueryError
	StoreSaveError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaDropError
	SchemaCollationError

	// Publish errors
	PublishCopyError
	PublishEmptyTableError
	PublishRankSchemaError
	PublishTruncateError
)
