package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"certifly/internal/certificate/models"
	"certifly/internal/certificate/ports"
	id "certifly/pkg/domain"
	dErrors "certifly/pkg/domain-errors"
	"certifly/pkg/platform/sentinel"
	"certifly/pkg/requestcontext"
)

const alreadyMintedMessage = "certificate has already been minted"

type mintSuccessDetails struct {
	MintID        string `json:"mintId"`
	LedgerAddress string `json:"ledgerAddress"`
}

// Mint anchors a verified certificate's document on the ledger and issues a
// token of authenticity for it. A certificate is minted at most once; repeat
// calls return the recorded mint.
func (s *Service) Mint(ctx context.Context, certID id.CertificateID, userID id.UserID) (*models.MintOutcome, error) {
	ctx, span := tracer.Start(ctx, "Certificate.Service.Mint")
	defer span.End()
	span.SetAttributes(attribute.String("certificate.id", certID.String()))

	cert, err := s.loadOwned(ctx, certID, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if outcome, done, err := s.mintPreconditions(cert); done {
		return outcome, err
	}

	unlock, err := s.mintLocks.Lock(ctx, certID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "mint request cancelled")
	}
	defer unlock()

	// A mint holding the lock before us may have finished.
	cert, err = s.reload(ctx, certID)
	if err != nil {
		return nil, err
	}
	if outcome, done, err := s.mintPreconditions(cert); done {
		return outcome, err
	}

	outcome, err := s.mint(ctx, cert)
	if err != nil {
		span.RecordError(err)
		s.metrics.IncMint("error")
		s.recorder.Record(ctx, userID, models.NewErrorLogEntry(certID, models.StepNFTMinting, err, requestcontext.Now(ctx)))
		s.logger.WarnContext(ctx, "certificate minting failed",
			"error", err,
			"certificate_id", certID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}
	return outcome, nil
}

// mintPreconditions reports done when no minting work is needed or allowed.
func (s *Service) mintPreconditions(cert *models.Certificate) (*models.MintOutcome, bool, error) {
	if err := cert.CanMint(); err != nil {
		return nil, true, err
	}
	if cert.IsMinted() {
		s.metrics.IncMint("already_in_state")
		return alreadyMinted(cert), true, nil
	}
	return nil, false, nil
}

func (s *Service) mint(ctx context.Context, cert *models.Certificate) (*models.MintOutcome, error) {
	owner, err := s.users.FindByID(ctx, cert.UserID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate owner")
	}
	if owner == nil || owner.WalletAddress.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "user wallet address not found")
	}

	ledgerAddress, err := s.ensureAnchored(ctx, cert)
	if err != nil {
		return nil, err
	}

	mintID, err := s.callMinter(ctx, ports.MintRequest{
		LedgerAddress: ledgerAddress,
		Title:         cert.Title,
		Description:   cert.MintDescription(),
		OwnerWallet:   owner.WalletAddress.String(),
		CertificateID: cert.ID,
		UserID:        cert.UserID,
	})
	if err != nil {
		return nil, upstreamFailure(err, "minting service failed")
	}

	now := requestcontext.Now(ctx)
	applied, err := s.certs.SetMintIDIfEmpty(ctx, cert.ID, mintID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record mint")
	}
	if !applied {
		current, err := s.reload(ctx, cert.ID)
		if err != nil {
			return nil, err
		}
		if !current.IsMinted() {
			return nil, dErrors.New(dErrors.CodeInvalidState, "certificate is no longer eligible for minting")
		}
		// Another instance recorded its mint first; ours is orphaned.
		s.recorder.Record(ctx, cert.UserID, models.NewLogEntry(cert.ID, models.StepNFTMinting, models.LogStatusError,
			models.TextDetails("mint "+mintID+" discarded: certificate already minted as "+*current.MintID), now))
		s.metrics.IncMint("already_in_state")
		return alreadyMinted(current), nil
	}

	details, err := json.Marshal(mintSuccessDetails{MintID: mintID, LedgerAddress: ledgerAddress})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode mint details")
	}
	s.recorder.Record(ctx, cert.UserID, models.NewLogEntry(cert.ID, models.StepNFTMinting, models.LogStatusSuccess, details, now))
	s.metrics.IncMint("success")
	s.logger.InfoContext(ctx, "certificate minted",
		"certificate_id", cert.ID.String(),
		"user_id", cert.UserID.String(),
		"mint_id", mintID,
		"ledger_address", ledgerAddress,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.MintOutcome{
		CertificateID: cert.ID,
		MintID:        mintID,
		LedgerAddress: ledgerAddress,
		Outcome:       models.OutcomeTransitioned,
	}, nil
}

// ensureAnchored uploads the document to the ledger unless an address is
// already recorded, and returns the address to mint against.
func (s *Service) ensureAnchored(ctx context.Context, cert *models.Certificate) (string, error) {
	if cert.IsAnchored() {
		return *cert.LedgerAddress, nil
	}

	data, err := s.documents.Get(ctx, cert.DocumentKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeInvalidState, "certificate document has not been uploaded")
		}
		return "", upstreamFailure(err, "failed to read certificate document")
	}

	address, err := s.upload(ctx, data, []ports.Tag{
		{Name: "Content-Type", Value: models.ContentTypePDF},
		{Name: "Certificate-Id", Value: cert.ID.String()},
		{Name: "User-Id", Value: cert.UserID.String()},
		{Name: "Title", Value: cert.Title},
	})
	if err != nil {
		return "", upstreamFailure(err, "ledger upload failed")
	}

	applied, err := s.certs.SetLedgerAddressIfEmpty(ctx, cert.ID, address, requestcontext.Now(ctx))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ledger address")
	}
	if applied {
		return address, nil
	}

	current, err := s.reload(ctx, cert.ID)
	if err != nil {
		return "", err
	}
	if !current.IsAnchored() {
		return "", dErrors.New(dErrors.CodeInternal, "ledger address missing after conflicting update")
	}
	return *current.LedgerAddress, nil
}

func (s *Service) upload(ctx context.Context, data []byte, tags []ports.Tag) (string, error) {
	callCtx, cancel := withTimeout(ctx, s.cfg.LedgerTimeout)
	defer cancel()

	start := time.Now()
	address, err := s.ledger.Upload(callCtx, data, tags)
	s.metrics.ObserveUpstream("ledger", start, err)
	return address, err
}

func (s *Service) callMinter(ctx context.Context, req ports.MintRequest) (string, error) {
	callCtx, cancel := withTimeout(ctx, s.cfg.MinterTimeout)
	defer cancel()

	start := time.Now()
	mintID, err := s.minter.Mint(callCtx, req)
	s.metrics.ObserveUpstream("minter", start, err)
	if err == nil && mintID == "" {
		err = ports.NewUpstreamError(ports.ErrorBadData, "minter", "empty mint id", nil)
	}
	return mintID, err
}

func alreadyMinted(cert *models.Certificate) *models.MintOutcome {
	out := &models.MintOutcome{
		CertificateID: cert.ID,
		Outcome:       models.OutcomeAlreadyInState,
		Message:       alreadyMintedMessage,
	}
	if cert.MintID != nil {
		out.MintID = *cert.MintID
	}
	if cert.LedgerAddress != nil {
		out.LedgerAddress = *cert.LedgerAddress
	}
	return out
}
