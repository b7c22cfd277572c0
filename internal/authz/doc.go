// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package authz guards API route groups with Casbin RBAC.
//
// The request flow is:
//
//	Request -> auth.Middleware.Optional -> authz.Middleware -> Handler
//
// auth attaches the principal when a bearer token is present; authz then
// enforces (role, path, action) against the embedded policy. Requests without
// a principal are evaluated as the "anonymous" role.
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act
//
// Roles are hierarchical: admin inherits user, which inherits anonymous.
// Actions are derived from the HTTP method (read, write, delete).
//
// Route-level decisions are coarse. Ownership of individual links and
// notifications is checked by the services behind the handlers.
package authz
