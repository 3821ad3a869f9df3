// Package audio decodes survey recordings into PCM tracks, partitions them
// into fixed-length windows and extracts those windows as standalone WAV clips.
package audio
