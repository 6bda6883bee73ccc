package gateway

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
)

// PCM format produced by the speech endpoint.
const (
	pcmSampleRate = 24000
	pcmChannels   = 1
	pcmBitDepth   = 16
)

// SynthesizeSpeech converts text to a playable WAV file. The provider returns
// raw PCM frames, so the RIFF header is added here.
func (g *Gateway) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	pcm, err := g.llm.Speech(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errors.New("empty audio from provider")
	}
	return wrapWAV(pcm, pcmSampleRate, pcmChannels, pcmBitDepth), nil
}

// Transcribe converts recorded audio to text. filename carries the extension
// the provider uses to sniff the container format (e.g. "voice.webm").
func (g *Gateway) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}
	if filename == "" {
		filename = "audio.webm"
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limiter")
	}
	return g.llm.Transcribe(ctx, filename, audio)
}

// wrapWAV prefixes raw little-endian PCM with a canonical 44-byte RIFF header.
func wrapWAV(pcm []byte, sampleRate, channels, bitDepth int) []byte {
	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // PCM chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM format
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
