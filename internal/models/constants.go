package models

import "os"

// Metadata defaults
const (
	DefaultBankName = "Unknown Bank"
	DefaultCurrency = "INR"
)

// File permissions
const (
	PermissionDataFile   os.FileMode = 0600
	PermissionDirectory  os.FileMode = 0750
	PermissionReportFile os.FileMode = 0644
)
