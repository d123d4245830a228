// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs one complete analysis: registry, per-service scan and
// classification, channel inference, overrides and result assembly.
//
// Every run starts from scratch. Services are processed in configured order;
// with more than one job the per-service work runs concurrently but its
// results are folded into the relation set in configured order, so the output
// is the same as a sequential run.
package pipeline
