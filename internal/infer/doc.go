// SPDX-License-Identifier: MPL-2.0

// Package infer associates role-bearing classes with channels by name.
//
// The meaningful segment of a class name (the words between the messaging
// package qualifier and the role suffix) is split at camel-case boundaries.
// A class matches a channel when every word occurs in the lower-cased channel
// identifier. "KafkaDeviceRegistrationConsumer" yields the words Device and
// Registration and so matches "device-registration-events".
package infer
