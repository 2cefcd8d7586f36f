// Package queue sends generated batches to message transports.
//
// A Producer owns one connection to a transport. The stream writer obtains
// producers from a Factory keyed by transport type ("kafka", "amqp" or
// "memory") and sends exactly one message per batch. Retries, if any,
// belong to the transport client; producers surface the first failure.
package queue
