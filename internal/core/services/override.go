package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure Overrider implements the interface.
var _ driving.Overrider = (*Overrider)(nil)

// Overrider runs the manual "render as text" protocol for one mounted file
// view. It owns a decode channel from construction until Close.
type Overrider struct {
	session driving.SessionService
	decoder driving.DecodeChannel
}

// NewOverrider acquires a decode channel from newDecoder.
func NewOverrider(session driving.SessionService, newDecoder driving.DecoderFactory) *Overrider {
	if newDecoder == nil {
		newDecoder = NewDecoderFactory()
	}
	return &Overrider{
		session: session,
		decoder: newDecoder(),
	}
}

// Override force-decodes the document at path as raw text and commits it.
//
// Documents that already hold decoded text commit it without a decode. A
// decode failure restores the committed phase and records an error wrapping
// domain.ErrForcedDecodeFailed so the view can offer a retry.
func (o *Overrider) Override(ctx context.Context, path string) error {
	doc, err := o.session.BeginForceRender(path)
	if err != nil {
		return err
	}

	if doc.CanRenderAsText {
		o.session.ForceRender(path, doc.Content)
		return nil
	}

	var res domain.DecodeResult
	select {
	case res = <-o.decoder.Decode(ctx, domain.DecodeRequest{Payload: doc.Content, Raw: true}):
	case <-ctx.Done():
		res = domain.DecodeResult{Err: ctx.Err()}
	}

	if res.Err != nil {
		err := fmt.Errorf("%w: %s: %w", domain.ErrForcedDecodeFailed, path, res.Err)
		logger.Warn("Forced render of %s failed: %v", path, res.Err)
		o.session.FailForceRender(path, err)
		return err
	}

	if !o.session.ForceRender(path, res.Text) {
		logger.Debug("Forced render of %s was not applied", path)
	}
	return nil
}

// Close releases the decode channel. Overrides still waiting on it fail.
func (o *Overrider) Close() error {
	return o.decoder.Close()
}
