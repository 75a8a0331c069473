// Package models defines the domain entities shared by the tdx client, the reference store, and the TUI.
//
// The package contains two categories of types:
//
// 1. Wire entities: the JSON records exchanged with the remote item store
//   - [Item] : one task with a store-assigned id, a name, and a done flag
//
// 2. Synchronizer vocabulary: small enums describing client-side state
//   - [Filter] : server-side scoping of the list query by completion status
//   - [Field] : the editable attributes of an [Item]
//   - [Phase] : the load lifecycle of a list (unloaded, loading, loaded)
//
// The [Repository] interface defines the storage operations used by the bundled reference store.
package models
