// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the dashboard.
	RouteRoot = "/"

	// RouteAccount is the account route prefix.
	RouteAccount = "/account"
	// RouteEvents is the events route prefix.
	RouteEvents = "/events"
	// RouteAdmin is the admin route prefix.
	RouteAdmin = "/admin"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	RouteRegister         = "/register"
	RouteLogin            = "/login"
	RouteLogout           = "/logout"
	RouteSignupSuccessful = "/signup-successful"
	RouteDetails          = "/details"

	RouteCreate       = "/create"
	RouteCalendar     = "/calendar"
	RouteCalendarFeed = "/calendar/feed"
	RouteEdit         = RouteParamID + "/edit"
	RouteDelete       = RouteParamID + "/delete"

	RouteUsers        = "/users"
	RouteAdminEvents  = "/events"
	RouteActivity     = "/activity"
	RouteApproveUser  = "/approveUser" + RouteParamID
	RouteRejectUser   = "/rejectUser" + RouteParamID
	RouteConfirmEvent = "/confirmEvent" + RouteParamID
)

// Redirect targets.
const (
	redirectLogin            = RouteAccount + RouteLogin
	redirectSignupSuccessful = RouteAccount + RouteSignupSuccessful
	redirectEvents           = RouteEvents
	redirectAdminUsers       = RouteAdmin + RouteUsers
	redirectAdminEvents      = RouteAdmin + RouteAdminEvents
)

// Flash message types understood by the flash partial.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
	flashTypeInfo    = "info"
)

// Messages shown on the login page.
const (
	msgLoginBlank       = "Please enter both email and password."
	msgLoginInvalid     = "Invalid email or password."
	msgLoginNotApproved = "Your account is awaiting administrator approval."
)
