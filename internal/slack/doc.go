// Package slack decides, once per physics step, which one-way members have
// gone slack and keeps segment-mounted weights riding on deformed segments.
//
// A tension-only member (a cable) stops transmitting force while it is
// compressed; a compression-only member (a strut) while it is stretched.
// A symmetric tolerance band of restLength*ToleranceRatio around the rest
// length counts as neither, so a member sitting at its rest length does not
// flicker between states.
//
// The engine never talks to a physics engine directly: the live constraint
// is reached through the [Spring] interface and body positions through a
// [structure.PositionFunc]. Per-segment results are upserted into engine-owned
// [State] records; readers get copies via [Engine.States].
package slack
