/*

Package warden defines interfaces used throughout the authorization engine,
such as: storage, transactions, handlers and conditions. It also contains
helpers to work with errors, context and time windows.
Look into this package to get a brief overview of design decisions made around
interfaces and extension building blocks.

*/

package warden
