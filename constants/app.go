package constants

// AppName is used for connection tagging and server identification.
const AppName = "receiptlens"

// Version is reported by the health endpoint.
const Version = "0.1.0"
