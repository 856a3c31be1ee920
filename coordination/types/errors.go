package types

import sdkerrors "cosmossdk.io/errors"

var (
	ErrUnauthorized        = sdkerrors.Register(ModuleName, 2, "caller lacks required capability")
	ErrRejectedQueryType   = sdkerrors.Register(ModuleName, 3, "query type not supported")
	ErrInsufficientPayment = sdkerrors.Register(ModuleName, 4, "payment below required fee")
	ErrUnknownQuery        = sdkerrors.Register(ModuleName, 5, "query not found")
	ErrInvalidTransition   = sdkerrors.Register(ModuleName, 6, "state transition not permitted")
	ErrMalformedConfig     = sdkerrors.Register(ModuleName, 7, "configuration missing required fields")
	ErrInvalidResult       = sdkerrors.Register(ModuleName, 8, "result pointer must not be empty")
	ErrInvalidPeriod       = sdkerrors.Register(ModuleName, 9, "insight period end before period start")
	ErrNoDeployment        = sdkerrors.Register(ModuleName, 10, "no deployment requested")
)
