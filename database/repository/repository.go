package repository

import (
	vendorRepo "eventura/database/repository/vendor"
)

// Re-export the VendorRepository interface and constructor.
type VendorRepository = vendorRepo.VendorRepository

var NewMongoVendorRepo = vendorRepo.NewMongoVendorRepo

var NewCachedVendorRepo = vendorRepo.NewCachedVendorRepo

var ErrVendorNotFound = vendorRepo.ErrVendorNotFound
