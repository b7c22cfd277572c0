// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package services

import (
	"context"
	"fmt"
)

// MessageRouter matches events.Bus and websocket.Hub.
type MessageRouter interface {
	Run(ctx context.Context) error
}

// RouterService runs the in-process event router under supervision.
// Closing the bus is left to main, after the tree has stopped, so a
// restart reuses the same subscriptions.
type RouterService struct {
	router MessageRouter
	name   string
}

// NewRouterService wraps router.
func NewRouterService(router MessageRouter) *RouterService {
	return &RouterService{router: router, name: "event-router"}
}

// WithName overrides the service name shown in supervisor logs.
func (s *RouterService) WithName(name string) *RouterService {
	s.name = name
	return s
}

// Serve implements suture.Service.
func (s *RouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

// String implements fmt.Stringer.
func (s *RouterService) String() string {
	return s.name
}
