// Package subject resolves the polymorphic (type, id) references stored on
// activities back to host entities. Each entity type is registered as a Kind
// with a batch Loader and, when the entity keeps a denormalized share counter,
// a ShareCounter that runs inside the activity transaction.
package subject
