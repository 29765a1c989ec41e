// Package designd hosts the optimizer as a service: an in-memory search store,
// an asynchronous executor, and the HTTP and gRPC front ends over them.
package designd
