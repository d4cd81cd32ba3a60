package transfer

// Column names for the transfers table. These are the canonical names used
// in SQL, in field sets supplied by callers, and in projections.
const (
	ColID                  = "id"
	ColURI                 = "uri"
	ColAppData             = "app_data"
	ColLocalPath           = "local_path"
	ColMimeType            = "mime_type"
	ColDestination         = "destination"
	ColVisibility          = "visibility"
	ColControl             = "control"
	ColStatus              = "status"
	ColLastModification    = "last_modification"
	ColNotificationPackage = "notification_package"
	ColNotificationClass   = "notification_class"
	ColNotificationExtras  = "notification_extras"
	ColCookieData          = "cookie_data"
	ColUserAgent           = "user_agent"
	ColReferer             = "referer"
	ColTotalBytes          = "total_bytes"
	ColCurrentBytes        = "current_bytes"
	ColUID                 = "uid"
	ColOtherUID            = "other_uid"
	ColTitle               = "title"
	ColDescription         = "description"
	ColRedirectRetries     = "redirect_retries"
	ColNoIntegrity         = "no_integrity"
	ColFileNameHint        = "file_name_hint"
	ColOTAUpdate           = "ota_update"
	ColNoSystemFiles       = "no_system_files"
	ColFailedConnections   = "failed_connections"
	ColETag                = "etag"
	ColMediaScanned        = "media_scanned"
)

// Column names for the request_headers table.
const (
	HeaderColID         = "id"
	HeaderColTransferID = "transfer_id"
	HeaderColHeader     = "header"
	HeaderColValue      = "value"
)

// HeaderFieldPrefix marks pseudo-fields in a create field set that carry one
// HTTP request header each, valued as a single "Name: Value" line.
const HeaderFieldPrefix = "http_header_"

// Destination classifies where a completed transfer's payload lands.
type Destination int64

const (
	DestinationExternal       Destination = 0
	DestinationCache          Destination = 1
	DestinationCachePurgeable Destination = 2
	DestinationCacheNoRoaming Destination = 3
	DestinationFileURI        Destination = 4
)

// Visibility controls whether and how a transfer surfaces to observers.
type Visibility int64

const (
	VisibilityVisible         Visibility = 0
	VisibilityNotifyCompleted Visibility = 1
	VisibilityHidden          Visibility = 2
)

// Control is the caller-facing run/pause flag the worker obeys.
type Control int64

const (
	ControlRun    Control = 0
	ControlPaused Control = 1
)

// Status is the worker-maintained state of a transfer. Values below 200 are
// in-flight, 200 is success, 4xx are terminal client-side failures and 49x
// are terminal server/storage failures.
type Status int64

const (
	StatusPending Status = 190
	StatusRunning Status = 192
	StatusPaused  Status = 193

	StatusSuccess Status = 200

	StatusBadRequest       Status = 400
	StatusNotAcceptable    Status = 406
	StatusLengthRequired   Status = 411
	StatusPreconditionFail Status = 412
	StatusCanceled         Status = 490
	StatusUnknownError     Status = 491
	StatusFileError        Status = 492
	StatusUnhandledCode    Status = 493
	StatusDataError        Status = 495
)

// Header is one HTTP request header attached to a transfer at creation.
type Header struct {
	Name  string
	Value string
}
