/*
Package stemdeck contains the types shared between the multitrack playback
engine (package deck) and the audio primitives that actually decode and output
the stems (packages stem and oto).

A Setlist lists TrackDescriptors. A Loader turns each descriptor into a Media,
which the engine positions, starts, pauses and attenuates. A Media that also
implements Analyser exposes its signal for metering and waveform display.
*/
package stemdeck
