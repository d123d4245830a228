// SPDX-License-Identifier: MPL-2.0

// Package classify decides whether a class produces to or consumes from the
// message broker.
//
// A class is a Producer when it, or the nearest ancestor that carries any
// client field, declares a field of a producer client type. Consumer clients
// are checked second, so a class holding both kinds is a Producer.
package classify
