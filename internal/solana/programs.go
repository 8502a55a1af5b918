package solana

// Program ids.
var (
	SystemProgram          = MustAddress("11111111111111111111111111111111")
	TokenProgram           = MustAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022Program       = MustAddress("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgram = MustAddress("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	MetaplexProgram        = MustAddress("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	RaydiumAMMV4Program    = MustAddress("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	MeteoraDLMMProgram     = MustAddress("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	PumpAMMProgram         = MustAddress("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
)

// Well-known mints.
var (
	WSOLMint = MustAddress("So11111111111111111111111111111111111111112")
	USDCMint = MustAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDTMint = MustAddress("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

// KnownSymbols maps well-known mints to display symbols.
var KnownSymbols = map[Address]string{
	WSOLMint: "SOL",
	USDCMint: "USDC",
	USDTMint: "USDT",
}
