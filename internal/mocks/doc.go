// Package mocks provides shared test doubles for the service, store and auth
// interfaces.
//
// Two styles live here. Function-field mocks (MockJWTService, MockTaskService,
// MockPasswordVerifier, FaultyTaskStore) fall back to fixed default values
// when a field is unset:
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: 1}, nil
//	    },
//	}
//
// MockUserStore is a testify mock and is configured with On(...).Return(...).
package mocks
