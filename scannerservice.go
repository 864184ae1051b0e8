package main

import "aria/internal/scanner"

type ScannerService struct {
	scanner *scanner.Service
}

func NewScannerService(scanService *scanner.Service) *ScannerService {
	return &ScannerService{scanner: scanService}
}

func (s *ScannerService) TriggerFullScan() error {
	return s.scanner.TriggerFullScan()
}

func (s *ScannerService) GetStatus() scanner.Status {
	return s.scanner.GetStatus()
}
