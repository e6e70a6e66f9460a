// Package services defines shared error utilities consumed by the workflow
// core and the external integrations.
//
// The sentinel markers plus the Wrap helper translate failures into a
// consistent taxonomy: transient marketplace/media faults that clear on the
// next poll cycle, precondition violations the decision loop is expected to
// recover from, and configuration problems that need operator action.
package services
