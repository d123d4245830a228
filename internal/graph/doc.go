// SPDX-License-Identifier: MPL-2.0

// Package graph holds the channel relation set: one relation per channel
// listing the services that produce to it and consume from it.
package graph
