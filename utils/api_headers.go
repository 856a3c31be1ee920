package utils

const (
	XRequesterAddressHeader = "X-Requester-Address"
	XAccountAddressHeader   = "X-Account-Address"
)
